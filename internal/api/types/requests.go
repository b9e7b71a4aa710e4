package types

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=72"`
	Role     string `json:"role" validate:"required"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ProjectRequest is the body of project create and edit. Status and
// created_by are accepted for compatibility and ignored.
type ProjectRequest struct {
	Title        string  `json:"title"`
	Type         string  `json:"type" validate:"max=64"`
	CustomerName *string `json:"customer_name" validate:"omitempty,max=255"`
	WriterName   *string `json:"writer_name" validate:"omitempty,max=255"`
	Description  *string `json:"description"`
	Deadline     *string `json:"deadline"`
	ClientPrice  Amount  `json:"client_price"`
	WriterPrice  Amount  `json:"writer_price"`
	Status       string  `json:"status,omitempty"`
	CreatedBy    any     `json:"created_by,omitempty"`
}

type StatusRequest struct {
	Status string  `json:"status" validate:"required"`
	Notes  *string `json:"notes"`
}

type NoteRequest struct {
	Content string `json:"content"`
}

type UserUpdateRequest struct {
	Username *string `json:"username" validate:"omitempty,max=64"`
	Password *string `json:"password" validate:"omitempty,max=72"`
	Role     *string `json:"role"`
}

type CustomerRequest struct {
	Name    string  `json:"name" validate:"required,max=255"`
	Contact *string `json:"contact" validate:"omitempty,max=255"`
	Company *string `json:"company" validate:"omitempty,max=255"`
}

type WriterRequest struct {
	Name      string  `json:"name" validate:"required,max=255"`
	Specialty *string `json:"specialty" validate:"omitempty,max=255"`
	Contact   *string `json:"contact" validate:"omitempty,max=255"`
	Rate      Amount  `json:"rate" validate:"gte=0"`
}

// Amount is a lenient number: it accepts JSON numbers, numeric strings and
// null. Anything non-numeric or non-finite decodes to zero.
type Amount float64

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*a = 0
		return nil
	}
	var s string
	if b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			*a = 0
			return nil
		}
	} else {
		s = string(b)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		*a = 0
		return nil
	}
	*a = Amount(f)
	return nil
}
