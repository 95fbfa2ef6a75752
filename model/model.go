package model

import (
	"cellscope/model/model"
)

// Model - Interface of all methods to be implemented by the stores.
type Model interface {
	// user
	CreateUser(user *model.User) (*model.User, int)
	GetUserByID(id string) (*model.User, int)
	GetUserByEmail(email string) (*model.User, int)
	UpdateUserInfo(id, firstName, lastName string) (*model.User, int)

	// dataset
	CreateDataset(dataset *model.Dataset) (*model.Dataset, int)
	GetDataset(id string) (*model.Dataset, int)
	GetDatasetByNameAndUser(name, userID string) (*model.Dataset, int)
	GetDatasetsByUser(userID string) ([]model.Dataset, int)
	UpdateDataset(id string, fields *model.DatasetUpdate) (*model.Dataset, int)
	DeleteDataset(id string) int
}
