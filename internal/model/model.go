// Package model defines the core domain types for the EveryDog League API.
package model

// SkillLevel is the difficulty category of an event.
type SkillLevel string

const (
	SkillBeginner     SkillLevel = "Beginner"
	SkillIntermediate SkillLevel = "Intermediate"
	SkillAdvanced     SkillLevel = "Advanced"
	SkillOpen         SkillLevel = "Open"
)

// SkillAll is the listing filter value meaning "no filter".
const SkillAll = "All"

// Valid reports whether s is one of the known skill levels.
func (s SkillLevel) Valid() bool {
	switch s {
	case SkillBeginner, SkillIntermediate, SkillAdvanced, SkillOpen:
		return true
	}
	return false
}

// DogSize is the size class of a registered dog.
type DogSize string

const (
	DogSmall  DogSize = "Small"
	DogMedium DogSize = "Medium"
	DogLarge  DogSize = "Large"
)

func (d DogSize) Valid() bool {
	switch d {
	case DogSmall, DogMedium, DogLarge:
		return true
	}
	return false
}

// ExperienceLevel is the handler's self-reported disc dog experience.
type ExperienceLevel string

const (
	ExperienceBeginner     ExperienceLevel = "Beginner"
	ExperienceIntermediate ExperienceLevel = "Intermediate"
	ExperienceAdvanced     ExperienceLevel = "Advanced"
)

func (e ExperienceLevel) Valid() bool {
	switch e {
	case ExperienceBeginner, ExperienceIntermediate, ExperienceAdvanced:
		return true
	}
	return false
}

// Event is a scheduled meetup, workshop or competition.
type Event struct {
	ID              string     `json:"id" yaml:"id" bson:"id"`
	Title           string     `json:"title" yaml:"title" bson:"title"`
	Date            string     `json:"date" yaml:"date" bson:"date"`
	Time            string     `json:"time" yaml:"time" bson:"time"`
	Location        string     `json:"location" yaml:"location" bson:"location"`
	Description     string     `json:"description" yaml:"description" bson:"description"`
	SkillLevel      SkillLevel `json:"skill_level" yaml:"skill_level" bson:"skill_level"`
	Capacity        int        `json:"capacity" yaml:"capacity" bson:"capacity"`
	RegisteredCount int        `json:"registered_count" yaml:"registered_count" bson:"registered_count"`
	WhatToBring     []string   `json:"what_to_bring" yaml:"what_to_bring" bson:"what_to_bring"`
	ImageURL        string     `json:"image_url" yaml:"image_url" bson:"image_url"`
	CreatedAt       string     `json:"created_at" yaml:"created_at" bson:"created_at"`
}

// IsFull returns true when no places remain.
func (e *Event) IsFull() bool {
	return e.RegisteredCount >= e.Capacity
}

// Registration is one attendee (and dog) signed up for an event.
type Registration struct {
	ID              string          `json:"id" bson:"id"`
	EventID         string          `json:"event_id" bson:"event_id"`
	Name            string          `json:"name" bson:"name"`
	Email           string          `json:"email" bson:"email"`
	DogName         string          `json:"dog_name" bson:"dog_name"`
	DogBreed        string          `json:"dog_breed" bson:"dog_breed"`
	DogSize         DogSize         `json:"dog_size" bson:"dog_size"`
	ExperienceLevel ExperienceLevel `json:"experience_level" bson:"experience_level"`
	WaiverSigned    bool            `json:"waiver_signed" bson:"waiver_signed"`
	CreatedAt       string          `json:"created_at" bson:"created_at"`
}

// NewsletterSubscriber is one address on the mailing list.
type NewsletterSubscriber struct {
	ID        string `json:"id" bson:"id"`
	Email     string `json:"email" bson:"email"`
	CreatedAt string `json:"created_at" bson:"created_at"`
}

// ContactMessage is a message sent through the contact form.
type ContactMessage struct {
	ID                string `json:"id" bson:"id"`
	Name              string `json:"name" bson:"name"`
	Email             string `json:"email" bson:"email"`
	Message           string `json:"message" bson:"message"`
	VolunteerInterest bool   `json:"volunteer_interest" bson:"volunteer_interest"`
	CreatedAt         string `json:"created_at" bson:"created_at"`
}

// EventFilter selects and orders events for listing.
type EventFilter struct {
	// SkillLevel is empty for no filter.
	SkillLevel SkillLevel
	Ascending  bool
	Limit      int
}

// RegisterRequest is the payload for registering for an event.
// Free-text fields and WaiverSigned are pointers: "required" then means the
// key is present, so "" and an explicit false reach the service.
type RegisterRequest struct {
	Name            *string         `json:"name" validate:"required"`
	Email           *string         `json:"email" validate:"required"`
	DogName         *string         `json:"dog_name" validate:"required"`
	DogBreed        *string         `json:"dog_breed" validate:"required"`
	DogSize         DogSize         `json:"dog_size" validate:"required,enum"`
	ExperienceLevel ExperienceLevel `json:"experience_level" validate:"required,enum"`
	WaiverSigned    *bool           `json:"waiver_signed" validate:"required"`
}

// NewsletterRequest is the payload for a newsletter signup.
type NewsletterRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ContactRequest is the payload for the contact form. Text fields must be
// present but may be empty.
type ContactRequest struct {
	Name              *string `json:"name" validate:"required"`
	Email             *string `json:"email" validate:"required"`
	Message           *string `json:"message" validate:"required"`
	VolunteerInterest bool    `json:"volunteer_interest"`
}

// MessageResponse is the body of every successful write.
type MessageResponse struct {
	Message string `json:"message"`
}

// RegistrationResponse is returned after a successful registration.
type RegistrationResponse struct {
	Message        string `json:"message"`
	RegistrationID string `json:"registration_id"`
}

// EventListResponse wraps the listing so the top level stays an object.
type EventListResponse struct {
	Events []Event `json:"events"`
}

// FieldError is one field-level schema violation.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ErrorResponse is the standard JSON error envelope.
type ErrorResponse struct {
	Status int          `json:"status"`
	Detail string       `json:"detail"`
	Errors []FieldError `json:"errors,omitempty"`
}
