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

func (store *MongoDB) CreateUser(user *model.User) (*model.User, int) {
	if user.Email == "" || user.Password == "" {
		return nil, http.StatusBadRequest
	}

	ctx, cancel := queryContext()
	defer cancel()

	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt

	if _, err := store.users().InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, http.StatusBadRequest
		}
		log.WithField("email", user.Email).WithError(err).Error("CreateUser Failed")
		return nil, http.StatusInternalServerError
	}

	return user, http.StatusCreated
}

func (store *MongoDB) GetUserByID(id string) (*model.User, int) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, http.StatusBadRequest
	}

	ctx, cancel := queryContext()
	defer cancel()

	var user model.User
	if err := store.users().FindOne(ctx, bson.M{"_id": objectID}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, http.StatusNotFound
		}
		log.WithField("user_id", id).WithError(err).Error("GetUserByID Failed")
		return nil, http.StatusInternalServerError
	}

	return &user, http.StatusFound
}

func (store *MongoDB) GetUserByEmail(email string) (*model.User, int) {
	if email == "" {
		return nil, http.StatusBadRequest
	}

	ctx, cancel := queryContext()
	defer cancel()

	var user model.User
	if err := store.users().FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, http.StatusNotFound
		}
		log.WithField("email", email).WithError(err).Error("GetUserByEmail Failed")
		return nil, http.StatusInternalServerError
	}

	return &user, http.StatusFound
}

// UpdateUserInfo updates the name fields of a user. Empty values leave the
// existing value untouched. Email is not updatable.
func (store *MongoDB) UpdateUserInfo(id, firstName, lastName string) (*model.User, int) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, http.StatusBadRequest
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if firstName != "" {
		set["first_name"] = firstName
	}
	if lastName != "" {
		set["last_name"] = lastName
	}

	ctx, cancel := queryContext()
	defer cancel()

	after := options.After
	opts := &options.FindOneAndUpdateOptions{ReturnDocument: &after}

	var user model.User
	err = store.users().FindOneAndUpdate(ctx,
		bson.M{"_id": objectID}, bson.M{"$set": set}, opts).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, http.StatusNotFound
		}
		log.WithField("user_id", id).WithError(err).Error("UpdateUserInfo Failed")
		return nil, http.StatusInternalServerError
	}

	return &user, http.StatusAccepted
}
