package models

import (
	"fmt"
	"strings"
	"time"
)

type FoodType string

const (
	FoodChicken FoodType = "chicken"
	FoodBeef    FoodType = "beef"
	FoodMutton  FoodType = "mutton"
	FoodFish    FoodType = "fish"

	// FoodUntagged groups tokens stored without a food choice.
	FoodUntagged FoodType = "untagged"
)

// FoodTypes lists the selectable food types in display order.
var FoodTypes = []FoodType{FoodChicken, FoodBeef, FoodMutton, FoodFish}

func ParseFoodType(s string) (FoodType, error) {
	f := FoodType(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range FoodTypes {
		if v == f {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown food type %q", s)
}

// TokenRecord is one reserved meal token. Student name, dorm and room are
// copied from the user at reservation time and are not kept in sync.
type TokenRecord struct {
	ID          string    `json:"id"`
	Month       string    `json:"month"`
	StudentID   string    `json:"studentId"`
	StudentName string    `json:"studentName"`
	DormName    string    `json:"dormName"`
	RoomNumber  string    `json:"roomNumber"`
	Date        time.Time `json:"date"`
	FoodType    FoodType  `json:"foodType,omitempty"`
}
