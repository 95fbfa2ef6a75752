package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// IsValidID reports whether id has the syntactic shape of a document id.
// Stores check this before querying so that a malformed id surfaces as a
// bad request instead of a not found.
func IsValidID(id string) bool {
	_, err := primitive.ObjectIDFromHex(id)
	return err == nil
}
