package model

import "github.com/go-playground/validator/v10"

// validate is the shared validator instance used by the model factories.
var validate = validator.New()
