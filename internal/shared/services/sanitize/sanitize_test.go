package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	svc := NewService()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "Rotterdam Pier 4", want: "Rotterdam Pier 4"},
		{name: "trim", in: "  Silo B  ", want: "Silo B"},
		{name: "script", in: `Depot<script>alert(1)</script>`, want: "Depot"},
		{name: "tags", in: "<b>Grain</b> &amp; <i>coal</i>", want: "Grain & coal"},
		{name: "ampersand", in: "Smith & Sons", want: "Smith & Sons"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.Text(tt.in))
		})
	}
}
