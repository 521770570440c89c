package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Vehicle struct {
	Plate string `json:"plate" bson:"plate"`
}

type User struct {
	ID          primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	Email       string             `json:"email" bson:"email"`
	Password    string             `json:"-" bson:"password"`
	Name        string             `json:"name" bson:"name"`
	Vehicle     Vehicle            `json:"vehicle" bson:"vehicle"`
	MemberSince time.Time          `json:"memberSince" bson:"memberSince"`
}

// UserProfile is the part of a User that is safe to hand back to clients.
type UserProfile struct {
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Vehicle     Vehicle   `json:"vehicle"`
	MemberSince time.Time `json:"memberSince"`
}

func (u User) Profile() UserProfile {
	return UserProfile{
		Email:       u.Email,
		Name:        u.Name,
		Vehicle:     u.Vehicle,
		MemberSince: u.MemberSince,
	}
}
