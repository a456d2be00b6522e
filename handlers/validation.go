package handlers

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("entityid", validateEntityID)
	}
}

// IsEntityID accepts the two id formats the stores hand out: UUIDs and 24-hex ObjectIDs.
func IsEntityID(s string) bool {
	if primitive.IsValidObjectID(s) {
		return true
	}
	_, err := uuid.Parse(s)
	return err == nil && len(s) == 36
}

func validateEntityID(fl validator.FieldLevel) bool {
	return IsEntityID(fl.Field().String())
}
