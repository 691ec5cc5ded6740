package utils

import (
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
)

func CreateJWTToken(userID string, role string, jwtSecretKey string) (string, error) {
	claims := jwt.MapClaims{}
	claims["authorized"] = true
	claims["userID"] = userID
	claims["role"] = role
	claims["exp"] = time.Now().Add(time.Hour * 24).Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecretKey))
}

// ExtractTokenUser reads the caller identity placed on the context by the JWT middleware.
func ExtractTokenUser(c echo.Context) (userID string, role string, ok bool) {
	user, isToken := c.Get("user").(*jwt.Token)
	if !isToken || !user.Valid {
		return "", "", false
	}

	claims, isMap := user.Claims.(jwt.MapClaims)
	if !isMap {
		return "", "", false
	}

	userID, _ = claims["userID"].(string)
	role, _ = claims["role"].(string)
	if userID == "" {
		return "", "", false
	}

	return userID, role, true
}
