package utils

import "go.mongodb.org/mongo-driver/bson/primitive"

// UniqueObjectIDs removes duplicate values from a slice of ObjectIDs while
// preserving order.
func UniqueObjectIDs(slice []primitive.ObjectID) []primitive.ObjectID {
	keys := make(map[primitive.ObjectID]bool)
	list := []primitive.ObjectID{}
	for _, entry := range slice {
		if _, value := keys[entry]; !value {
			keys[entry] = true
			list = append(list, entry)
		}
	}
	return list
}

// ContainsObjectID reports whether id is present in the slice.
func ContainsObjectID(slice []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, entry := range slice {
		if entry == id {
			return true
		}
	}
	return false
}
