package mongodb

import (
	"net/http"
	"time"

	"cellscope/model/model"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateDataset inserts a dataset. The unique (name, user) index is the
// last line of defense; callers are expected to have run the existence
// check before any expensive work.
func (store *MongoDB) CreateDataset(dataset *model.Dataset) (*model.Dataset, int) {
	if dataset.Name == "" || dataset.UserID.IsZero() {
		return nil, http.StatusBadRequest
	}

	ctx, cancel := queryContext()
	defer cancel()

	dataset.ID = primitive.NewObjectID()
	dataset.CreatedAt = time.Now().UTC()
	dataset.UpdatedAt = dataset.CreatedAt

	if _, err := store.datasets().InsertOne(ctx, dataset); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, http.StatusConflict
		}
		log.WithFields(log.Fields{"name": dataset.Name,
			"user_id": dataset.UserID.Hex()}).WithError(err).Error("CreateDataset Failed")
		return nil, http.StatusInternalServerError
	}

	return dataset, http.StatusCreated
}

func (store *MongoDB) GetDataset(id string) (*model.Dataset, int) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, http.StatusBadRequest
	}

	ctx, cancel := queryContext()
	defer cancel()

	var dataset model.Dataset
	if err := store.datasets().FindOne(ctx, bson.M{"_id": objectID}).Decode(&dataset); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, http.StatusNotFound
		}
		log.WithField("dataset_id", id).WithError(err).Error("GetDataset Failed")
		return nil, http.StatusInternalServerError
	}

	return &dataset, http.StatusFound
}

func (store *MongoDB) GetDatasetByNameAndUser(name, userID string) (*model.Dataset, int) {
	userObjectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, http.StatusBadRequest
	}

	ctx, cancel := queryContext()
	defer cancel()

	var dataset model.Dataset
	err = store.datasets().FindOne(ctx,
		bson.M{"name": name, "user": userObjectID}).Decode(&dataset)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, http.StatusNotFound
		}
		log.WithFields(log.Fields{"name": name,
			"user_id": userID}).WithError(err).Error("GetDatasetByNameAndUser Failed")
		return nil, http.StatusInternalServerError
	}

	return &dataset, http.StatusFound
}

// GetDatasetsByUser returns the user's datasets, newest first.
func (store *MongoDB) GetDatasetsByUser(userID string) ([]model.Dataset, int) {
	userObjectID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, http.StatusBadRequest
	}

	ctx, cancel := queryContext()
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := store.datasets().Find(ctx, bson.M{"user": userObjectID}, opts)
	if err != nil {
		log.WithField("user_id", userID).WithError(err).Error("GetDatasetsByUser Failed")
		return nil, http.StatusInternalServerError
	}
	defer cursor.Close(ctx)

	datasets := make([]model.Dataset, 0)
	if err := cursor.All(ctx, &datasets); err != nil {
		log.WithField("user_id", userID).WithError(err).Error("GetDatasetsByUser decode failed")
		return nil, http.StatusInternalServerError
	}

	return datasets, http.StatusFound
}

// UpdateDataset only ever touches name and description. Other fields on
// the payload are ignored.
func (store *MongoDB) UpdateDataset(id string, fields *model.DatasetUpdate) (*model.Dataset, int) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, http.StatusBadRequest
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if fields.Name != nil {
		set["name"] = *fields.Name
	}
	if fields.Description != nil {
		set["description"] = *fields.Description
	}

	ctx, cancel := queryContext()
	defer cancel()

	after := options.After
	opts := &options.FindOneAndUpdateOptions{ReturnDocument: &after}

	var dataset model.Dataset
	err = store.datasets().FindOneAndUpdate(ctx,
		bson.M{"_id": objectID}, bson.M{"$set": set}, opts).Decode(&dataset)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, http.StatusNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, http.StatusConflict
		}
		log.WithField("dataset_id", id).WithError(err).Error("UpdateDataset Failed")
		return nil, http.StatusInternalServerError
	}

	return &dataset, http.StatusAccepted
}

// DeleteDataset removes the record only. Objects referenced on the file
// store are not garbage collected.
func (store *MongoDB) DeleteDataset(id string) int {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return http.StatusBadRequest
	}

	ctx, cancel := queryContext()
	defer cancel()

	result, err := store.datasets().DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		log.WithField("dataset_id", id).WithError(err).Error("DeleteDataset Failed")
		return http.StatusInternalServerError
	}
	if result.DeletedCount == 0 {
		return http.StatusNotFound
	}

	return http.StatusAccepted
}
