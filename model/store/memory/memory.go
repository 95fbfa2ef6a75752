// Package memory holds an in-process implementation of the store,
// used by tests and by development runs without a database. It enforces
// the same uniqueness semantics as the mongodb store.
package memory

import (
	"net/http"
	"sort"
	"sync"
	"time"

	"cellscope/model/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Memory struct {
	mu       sync.Mutex
	users    map[string]model.User
	datasets map[string]model.Dataset
}

var instance *Memory
var once sync.Once

func GetInstance() *Memory {
	once.Do(func() {
		instance = New()
	})
	return instance
}

func New() *Memory {
	return &Memory{
		users:    map[string]model.User{},
		datasets: map[string]model.Dataset{},
	}
}

// Reset drops all records. For tests.
func (store *Memory) Reset() {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.users = map[string]model.User{}
	store.datasets = map[string]model.Dataset{}
}

func (store *Memory) CreateUser(user *model.User) (*model.User, int) {
	if user.Email == "" || user.Password == "" {
		return nil, http.StatusBadRequest
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	for _, existing := range store.users {
		if existing.Email == user.Email {
			return nil, http.StatusBadRequest
		}
	}

	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	store.users[user.ID.Hex()] = *user

	return user, http.StatusCreated
}

func (store *Memory) GetUserByID(id string) (*model.User, int) {
	if !model.IsValidID(id) {
		return nil, http.StatusBadRequest
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	user, exists := store.users[id]
	if !exists {
		return nil, http.StatusNotFound
	}
	return &user, http.StatusFound
}

func (store *Memory) GetUserByEmail(email string) (*model.User, int) {
	if email == "" {
		return nil, http.StatusBadRequest
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	for _, user := range store.users {
		if user.Email == email {
			userCopy := user
			return &userCopy, http.StatusFound
		}
	}
	return nil, http.StatusNotFound
}

func (store *Memory) UpdateUserInfo(id, firstName, lastName string) (*model.User, int) {
	if !model.IsValidID(id) {
		return nil, http.StatusBadRequest
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	user, exists := store.users[id]
	if !exists {
		return nil, http.StatusNotFound
	}

	if firstName != "" {
		user.FirstName = firstName
	}
	if lastName != "" {
		user.LastName = lastName
	}
	user.UpdatedAt = time.Now().UTC()
	store.users[id] = user

	return &user, http.StatusAccepted
}

func (store *Memory) CreateDataset(dataset *model.Dataset) (*model.Dataset, int) {
	if dataset.Name == "" || dataset.UserID.IsZero() {
		return nil, http.StatusBadRequest
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	for _, existing := range store.datasets {
		if existing.Name == dataset.Name && existing.UserID == dataset.UserID {
			return nil, http.StatusConflict
		}
	}

	dataset.ID = primitive.NewObjectID()
	dataset.CreatedAt = time.Now().UTC()
	dataset.UpdatedAt = dataset.CreatedAt
	store.datasets[dataset.ID.Hex()] = *dataset

	return dataset, http.StatusCreated
}

func (store *Memory) GetDataset(id string) (*model.Dataset, int) {
	if !model.IsValidID(id) {
		return nil, http.StatusBadRequest
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	dataset, exists := store.datasets[id]
	if !exists {
		return nil, http.StatusNotFound
	}
	return &dataset, http.StatusFound
}

func (store *Memory) GetDatasetByNameAndUser(name, userID string) (*model.Dataset, int) {
	if !model.IsValidID(userID) {
		return nil, http.StatusBadRequest
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	for _, dataset := range store.datasets {
		if dataset.Name == name && dataset.UserID.Hex() == userID {
			datasetCopy := dataset
			return &datasetCopy, http.StatusFound
		}
	}
	return nil, http.StatusNotFound
}

func (store *Memory) GetDatasetsByUser(userID string) ([]model.Dataset, int) {
	if !model.IsValidID(userID) {
		return nil, http.StatusBadRequest
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	datasets := make([]model.Dataset, 0)
	for _, dataset := range store.datasets {
		if dataset.UserID.Hex() == userID {
			datasets = append(datasets, dataset)
		}
	}

	// Newest first.
	sort.Slice(datasets, func(i, j int) bool {
		return datasets[i].CreatedAt.After(datasets[j].CreatedAt)
	})

	return datasets, http.StatusFound
}

func (store *Memory) UpdateDataset(id string, fields *model.DatasetUpdate) (*model.Dataset, int) {
	if !model.IsValidID(id) {
		return nil, http.StatusBadRequest
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	dataset, exists := store.datasets[id]
	if !exists {
		return nil, http.StatusNotFound
	}

	if fields.Name != nil && *fields.Name != dataset.Name {
		for _, existing := range store.datasets {
			if existing.Name == *fields.Name && existing.UserID == dataset.UserID {
				return nil, http.StatusConflict
			}
		}
	}

	if fields.Name != nil {
		dataset.Name = *fields.Name
	}
	if fields.Description != nil {
		dataset.Description = *fields.Description
	}
	dataset.UpdatedAt = time.Now().UTC()
	store.datasets[id] = dataset

	return &dataset, http.StatusAccepted
}

func (store *Memory) DeleteDataset(id string) int {
	if !model.IsValidID(id) {
		return http.StatusBadRequest
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	if _, exists := store.datasets[id]; !exists {
		return http.StatusNotFound
	}
	delete(store.datasets, id)

	return http.StatusAccepted
}
