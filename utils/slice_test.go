package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUniqueObjectIDs(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()

	out := UniqueObjectIDs([]primitive.ObjectID{a, b, a, a, b})
	assert.Equal(t, []primitive.ObjectID{a, b}, out)

	assert.Empty(t, UniqueObjectIDs(nil))
}

func TestContainsObjectID(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()

	assert.True(t, ContainsObjectID([]primitive.ObjectID{a, b}, b))
	assert.False(t, ContainsObjectID([]primitive.ObjectID{a}, b))
	assert.False(t, ContainsObjectID(nil, a))
}
