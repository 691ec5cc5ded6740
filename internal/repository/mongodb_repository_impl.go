package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/ahmadrazza2001/backend-trynbuy/internal/domain"
	"github.com/ahmadrazza2001/backend-trynbuy/pkg/errs"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	productsCollection = "products"
	usersCollection    = "users"

	writeConflictCode = 112
)

type MongoDBRepositoryImpl struct {
	db *mongo.Database
}

func CreateNewMongoDBRepository(db *mongo.Database) Repository {
	return &MongoDBRepositoryImpl{db: db}
}

func (r *MongoDBRepositoryImpl) HandleTrx(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := r.db.Client().StartSession()
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "HandleTrx").Msg("")
		return err
	}

	// Defers ending the session after the transaction is committed or ended
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(ctx mongo.SessionContext) (interface{}, error) {
		return nil, fn(ctx)
	})
	if err == nil {
		return nil
	}

	if isTransactionConflict(err) {
		log.Ctx(ctx).Warn().Err(err).Str("component", "HandleTrx").Msg("transaction conflict outlived retries")
		return fmt.Errorf("%w: %v", errs.ErrConflict, err)
	}

	if _, known := errs.Known(err); !known {
		log.Ctx(ctx).Error().Err(err).Str("component", "HandleTrx").Msg("")
	}

	return err
}

func isTransactionConflict(err error) bool {
	var labeled mongo.LabeledError
	if errors.As(err, &labeled) {
		if labeled.HasErrorLabel("TransientTransactionError") || labeled.HasErrorLabel("UnknownTransactionCommitResult") {
			return true
		}
	}

	var serverErr mongo.ServerError
	if errors.As(err, &serverErr) && serverErr.HasErrorCode(writeConflictCode) {
		return true
	}

	return false
}

func (r *MongoDBRepositoryImpl) AddProduct(ctx context.Context, data domain.Product) (id primitive.ObjectID, err error) {
	result, err := r.db.Collection(productsCollection).InsertOne(ctx, data)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "AddProduct").Msg("")
		return
	}

	return result.InsertedID.(primitive.ObjectID), nil
}

func (r *MongoDBRepositoryImpl) GetProductByID(ctx context.Context, id primitive.ObjectID) (product domain.Product, err error) {
	filter := bson.D{{Key: domain.ProductFieldID, Value: id}}

	err = r.db.Collection(productsCollection).FindOne(ctx, filter).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return product, errs.ErrProductNotFound
		}

		log.Ctx(ctx).Error().Err(err).Str("component", "GetProductByID").Msg("")
		return product, err
	}

	return product, nil
}

func (r *MongoDBRepositoryImpl) GetProducts(ctx context.Context, filter domain.ProductFilter) (data []domain.ProductWithOwner, err error) {
	cursor, err := r.db.Collection(productsCollection).Aggregate(ctx, buildProductPipeline(filter))
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "GetProducts").Msg("")
		return
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &data); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "GetProducts").Msg("")
		return
	}

	return data, nil
}

// buildProductPipeline matches products by filter and joins the owner's public
// identity under "owner".
func buildProductPipeline(filter domain.ProductFilter) mongo.Pipeline {
	match := bson.D{}
	if len(filter.IDs) > 0 || filter.MatchIDs {
		ids := filter.IDs
		if ids == nil {
			ids = []primitive.ObjectID{}
		}
		match = append(match, bson.E{Key: domain.ProductFieldID, Value: bson.D{{Key: "$in", Value: ids}}})
	}
	if filter.Status != "" {
		match = append(match, bson.E{Key: domain.ProductFieldStatus, Value: filter.Status})
	}
	if filter.ProductType != "" {
		match = append(match, bson.E{Key: domain.ProductFieldProductType, Value: filter.ProductType})
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}, {Key: domain.ProductFieldID, Value: 1}}}},
	}

	if filter.Limit > 0 {
		if filter.Page > 1 {
			pipeline = append(pipeline, bson.D{{Key: "$skip", Value: int64(filter.Page-1) * int64(filter.Limit)}})
		}
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: int64(filter.Limit)}})
	}

	pipeline = append(pipeline,
		bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: usersCollection},
			{Key: "let", Value: bson.D{{Key: "ownerId", Value: "$" + domain.ProductFieldOwnerID}}},
			{Key: "pipeline", Value: bson.A{
				bson.D{{Key: "$match", Value: bson.D{{Key: "$expr", Value: bson.D{
					{Key: "$eq", Value: bson.A{"$_id", "$$ownerId"}},
				}}}}},
				bson.D{{Key: "$project", Value: bson.D{
					{Key: "username", Value: 1},
					{Key: "firstName", Value: 1},
					{Key: "lastName", Value: 1},
					{Key: "createdAt", Value: 1},
				}}},
			}},
			{Key: "as", Value: "owner"},
		}}},
		bson.D{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$owner"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
	)

	return pipeline
}

func (r *MongoDBRepositoryImpl) UpdateProductDetails(ctx context.Context, data domain.Product) (err error) {
	filter := bson.D{{Key: domain.ProductFieldID, Value: data.ID}}

	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "title", Value: data.Title},
		{Key: "description", Value: data.Description},
		{Key: "price", Value: data.Price},
		{Key: "quantity", Value: data.Quantity},
		{Key: "images", Value: data.Images},
		{Key: "arImage", Value: data.ARImages},
		{Key: "keywords", Value: data.Keywords},
		{Key: domain.ProductFieldProductType, Value: data.ProductType},
		{Key: "updatedAt", Value: data.UpdatedAt},
	}}}

	result, err := r.db.Collection(productsCollection).UpdateOne(ctx, filter, update)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "UpdateProductDetails").Msg("Failed to update product")
		return
	}

	if result.MatchedCount == 0 {
		return errs.ErrProductNotFound
	}

	return nil
}

func (r *MongoDBRepositoryImpl) SetProductStatus(ctx context.Context, id primitive.ObjectID, status domain.ProductStatus) (err error) {
	filter := bson.D{{Key: domain.ProductFieldID, Value: id}}

	update := bson.D{{Key: "$set", Value: bson.D{{Key: domain.ProductFieldStatus, Value: status}}}}

	result, err := r.db.Collection(productsCollection).UpdateOne(ctx, filter, update)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "SetProductStatus").Msg("Failed to update product status")
		return
	}

	if result.MatchedCount == 0 {
		return errs.ErrProductNotFound
	}

	return nil
}

func (r *MongoDBRepositoryImpl) DeleteProduct(ctx context.Context, id primitive.ObjectID) (err error) {
	filter := bson.D{{Key: domain.ProductFieldID, Value: id}}

	result, err := r.db.Collection(productsCollection).DeleteOne(ctx, filter)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "DeleteProduct").Msg("")
		return
	}

	if result.DeletedCount == 0 {
		return errs.ErrProductNotFound
	}

	return nil
}

func (r *MongoDBRepositoryImpl) GetUserByID(ctx context.Context, id primitive.ObjectID) (user domain.User, err error) {
	filter := bson.D{{Key: "_id", Value: id}}

	err = r.db.Collection(usersCollection).FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return user, errs.ErrUserNotFound
		}

		log.Ctx(ctx).Error().Err(err).Str("component", "GetUserByID").Msg("")
		return user, err
	}

	return user, nil
}

func (r *MongoDBRepositoryImpl) GetUsers(ctx context.Context) (data []domain.User, err error) {
	opts := options.Find().SetProjection(bson.D{
		{Key: "_id", Value: 1},
		{Key: "role", Value: 1},
		{Key: domain.UserFieldPublicProducts, Value: 1},
		{Key: domain.UserFieldPrivateProducts, Value: 1},
	})

	cursor, err := r.db.Collection(usersCollection).Find(ctx, bson.D{}, opts)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "GetUsers").Msg("")
		return
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &data); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "GetUsers").Msg("")
		return
	}

	return data, nil
}

func (r *MongoDBRepositoryImpl) UpsertUser(ctx context.Context, data domain.User) (err error) {
	filter := bson.D{{Key: "_id", Value: data.ID}}

	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "username", Value: data.Username},
			{Key: "firstName", Value: data.FirstName},
			{Key: "lastName", Value: data.LastName},
			{Key: "email", Value: data.Email},
			{Key: "role", Value: data.Role},
		}},
		{Key: "$setOnInsert", Value: bson.D{
			{Key: domain.UserFieldPublicProducts, Value: bson.A{}},
			{Key: domain.UserFieldPrivateProducts, Value: bson.A{}},
			{Key: "createdAt", Value: data.CreatedAt},
		}},
	}

	_, err = r.db.Collection(usersCollection).UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "UpsertUser").Msg("")
		return
	}

	return nil
}

func (r *MongoDBRepositoryImpl) UpdateUserProfile(ctx context.Context, data domain.User) (err error) {
	filter := bson.D{{Key: "_id", Value: data.ID}}

	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "username", Value: data.Username},
		{Key: "firstName", Value: data.FirstName},
		{Key: "lastName", Value: data.LastName},
		{Key: "email", Value: data.Email},
	}}}

	return r.updateUser(ctx, "UpdateUserProfile", filter, update, errs.ErrUserNotFound)
}

func (r *MongoDBRepositoryImpl) UpdateUserRole(ctx context.Context, id primitive.ObjectID, role domain.Role) (err error) {
	filter := bson.D{{Key: "_id", Value: id}}

	update := bson.D{{Key: "$set", Value: bson.D{{Key: "role", Value: role}}}}

	return r.updateUser(ctx, "UpdateUserRole", filter, update, errs.ErrUserNotFound)
}

func (r *MongoDBRepositoryImpl) MoveProductReference(ctx context.Context, userID, productID primitive.ObjectID, from, to domain.ProductStatus) (err error) {
	filter := bson.D{
		{Key: "_id", Value: userID},
		{Key: from.ListField(), Value: productID},
	}

	update := bson.D{
		{Key: "$pull", Value: bson.D{{Key: from.ListField(), Value: productID}}},
		{Key: "$addToSet", Value: bson.D{{Key: to.ListField(), Value: productID}}},
	}

	return r.updateUser(ctx, "MoveProductReference", filter, update, errs.ErrNotFound)
}

func (r *MongoDBRepositoryImpl) PushProductReference(ctx context.Context, userID, productID primitive.ObjectID, status domain.ProductStatus) (err error) {
	filter := bson.D{{Key: "_id", Value: userID}}

	update := bson.D{{Key: "$addToSet", Value: bson.D{{Key: status.ListField(), Value: productID}}}}

	return r.updateUser(ctx, "PushProductReference", filter, update, errs.ErrUserNotFound)
}

func (r *MongoDBRepositoryImpl) PullProductReference(ctx context.Context, userID, productID primitive.ObjectID, statuses ...domain.ProductStatus) (err error) {
	filter := bson.D{{Key: "_id", Value: userID}}

	pull := bson.D{}
	for _, status := range statuses {
		pull = append(pull, bson.E{Key: status.ListField(), Value: productID})
	}
	if len(pull) == 0 {
		return nil
	}

	update := bson.D{{Key: "$pull", Value: pull}}

	return r.updateUser(ctx, "PullProductReference", filter, update, errs.ErrUserNotFound)
}

func (r *MongoDBRepositoryImpl) updateUser(ctx context.Context, component string, filter, update bson.D, notMatched error) error {
	result, err := r.db.Collection(usersCollection).UpdateOne(ctx, filter, update)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", component).Msg("Failed to update user")
		return err
	}

	if result.MatchedCount == 0 {
		return notMatched
	}

	return nil
}
