package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	consolevalidator "github.com/jwalitptl/ubs-console/pkg/validator"
)

// RegisterValidation adds the console's custom tags (cpf, strongpassword,
// personname) to gin's binding engine so ShouldBind enforces them.
func RegisterValidation() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected binding engine %T", binding.Validator.Engine())
	}
	return consolevalidator.Register(v)
}
