package mongo

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestEntryOrderBreaksPositionTies(t *testing.T) {
	want := bson.D{
		{Key: "planId", Value: 1},
		{Key: "position", Value: 1},
		{Key: "createdAt", Value: 1},
		{Key: "_id", Value: 1},
	}
	if len(entryOrder) != len(want) {
		t.Fatalf("entryOrder = %v, want %v", entryOrder, want)
	}
	for i := range want {
		if entryOrder[i].Key != want[i].Key || entryOrder[i].Value != want[i].Value {
			t.Errorf("sort key %d = %v, want %v", i, entryOrder[i], want[i])
		}
	}
}
