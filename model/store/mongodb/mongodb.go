package mongodb

import (
	"context"
	"time"

	C "cellscope/config"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	usersCollection    = "users"
	datasetsCollection = "datasets"

	queryTimeout = 10 * time.Second
)

// MongoDB implements model.Model on the mongo database held by
// config.Services. Constructed per call site, stateless.
type MongoDB struct{}

func (store *MongoDB) users() *mongo.Collection {
	return C.GetServices().Db.Collection(usersCollection)
}

func (store *MongoDB) datasets() *mongo.Collection {
	return C.GetServices().Db.Collection(datasetsCollection)
}

func queryContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), queryTimeout)
}
