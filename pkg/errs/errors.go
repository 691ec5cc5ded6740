package errs

import (
	"errors"
	"net/http"
)

const (
	ErrStatusInternalServer = http.StatusInternalServerError
	ErrStatusClient         = http.StatusBadRequest
	ErrStatusNotLoggedIn    = http.StatusUnauthorized
	ErrStatusNoPermission   = http.StatusForbidden
	ErrStatusNotFound       = http.StatusNotFound
	ErrStatusConflict       = http.StatusConflict
)

var (
	ErrInternalServer = errors.New("Internal server error")
	ErrClient         = errors.New("Bad request")
	ErrNotLoggedIn    = errors.New("Unauthorized access")
	ErrForbidden      = errors.New("Forbidden access")
	ErrNotFound       = errors.New("Resource not found")
	ErrConflict       = errors.New("Conflicting concurrent update, please retry")

	ErrUserNotFound             = errors.New("User not found")
	ErrProductNotFound          = errors.New("Product not found")
	ErrProductsNotFound         = errors.New("Products not found!")
	ErrNoPublicProducts         = errors.New("No public products found")
	ErrNoPrivateProducts        = errors.New("No private products found")
	ErrNotInPublicProducts      = errors.New("No such product found in user's public products")
	ErrNotInPrivateProducts     = errors.New("No such product found in user's private products")
	ErrNotProductOwner          = errors.New("You are not authorized to modify this product")
	ErrInvalidID                = errors.New("Invalid id")
	ErrInvalidProductVisibility = errors.New("Product visibility must be public or private")
)

var errorMap = map[error]int{
	ErrInternalServer: ErrStatusInternalServer,
	ErrClient:         ErrStatusClient,
	ErrNotLoggedIn:    ErrStatusNotLoggedIn,
	ErrForbidden:      ErrStatusNoPermission,
	ErrNotFound:       ErrStatusNotFound,
	ErrConflict:       ErrStatusConflict,

	ErrUserNotFound:             ErrStatusNotFound,
	ErrProductNotFound:          ErrStatusNotFound,
	ErrProductsNotFound:         ErrStatusNotFound,
	ErrNoPublicProducts:         ErrStatusNotFound,
	ErrNoPrivateProducts:        ErrStatusNotFound,
	ErrNotInPublicProducts:      ErrStatusNotFound,
	ErrNotInPrivateProducts:     ErrStatusNotFound,
	ErrNotProductOwner:          ErrStatusNoPermission,
	ErrInvalidID:                ErrStatusClient,
	ErrInvalidProductVisibility: ErrStatusClient,
}

// Known returns the registered error that err wraps, if any.
func Known(err error) (error, bool) {
	if err == nil {
		return nil, false
	}
	if _, ok := errorMap[err]; ok {
		return err, true
	}
	for known := range errorMap {
		if errors.Is(err, known) {
			return known, true
		}
	}
	return nil, false
}

func GetErrorStatusCode(err error) int {
	known, ok := Known(err)
	if !ok {
		return errorMap[ErrInternalServer]
	}
	return errorMap[known]
}
