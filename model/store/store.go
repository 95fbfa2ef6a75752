package store

import (
	C "cellscope/config"
	"cellscope/model"
	"cellscope/model/store/memory"
	"cellscope/model/store/mongodb"
)

// GetStore - Decides on which model implementation to use by
// configuration and returns the store.
func GetStore() model.Model {
	if C.GetConfig().StoreBackend == C.StoreBackendMemory {
		return memory.GetInstance()
	}
	return &mongodb.MongoDB{}
}
