package response

import (
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusOKWithData(t *testing.T) {
	data := map[string]string{"key": "value"}
	resp := StatusOKWithData(data)

	assert.Equal(t, StatusOK, resp.Status)
	assert.Empty(t, resp.Error)
	assert.Equal(t, data, resp.Data)
}

func TestError(t *testing.T) {
	msg := "daily limit reached"
	resp := Error(msg)

	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, msg, resp.Error)
}

func TestErrorWithData(t *testing.T) {
	resp := ErrorWithData("daily limit reached", map[string]int{"used": 10})

	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, "daily limit reached", resp.Error)
	assert.Equal(t, map[string]int{"used": 10}, resp.Data)
}

func TestValidationError(t *testing.T) {
	type request struct {
		Name       string `validate:"required"`
		Price      string `validate:"numeric"`
		DailyLimit int    `validate:"gte=0"`
		Email      string `validate:"email"`
		Status     string `validate:"oneof=active expired"`
	}

	err := validator.New().Struct(request{Price: "ten", DailyLimit: -1, Email: "nope", Status: "paused"})
	require.Error(t, err)

	resp := ValidationError(err.(validator.ValidationErrors))

	assert.Equal(t, StatusError, resp.Status)
	assert.Contains(t, resp.Error, "field Name is a required field")
	assert.Contains(t, resp.Error, "field Price can contain only numbers")
	assert.Contains(t, resp.Error, "field DailyLimit must be at least 0")
	assert.Contains(t, resp.Error, "field Email must be a valid email")
	assert.Contains(t, resp.Error, "field Status must be one of [active expired]")
}
