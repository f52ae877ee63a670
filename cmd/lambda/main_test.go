package main

import (
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
)

func TestApplyAuthorizerClaims(t *testing.T) {
	tests := []struct {
		name    string
		claims  map[string]string
		headers map[string]string
		want    map[string]string
	}{
		{
			name:    "claims become identity headers",
			claims:  map[string]string{"sub": "user-1", "email": "u1@example.com", "role": "authenticated"},
			headers: map[string]string{},
			want: map[string]string{
				"X-API-Gateway-Authorized": "true",
				"X-User-ID":                "user-1",
				"X-User-Email":             "u1@example.com",
				"X-User-Roles":             "authenticated",
			},
		},
		{
			name:    "spoofed headers are dropped without claims",
			claims:  nil,
			headers: map[string]string{"x-user-id": "admin", "X-API-Gateway-Authorized": "true", "accept": "*/*"},
			want:    map[string]string{"accept": "*/*"},
		},
		{
			name:    "claims without subject are ignored",
			claims:  map[string]string{"email": "u1@example.com"},
			headers: map[string]string{},
			want:    map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := events.APIGatewayV2HTTPRequest{Headers: tt.headers}
			if tt.claims != nil {
				req.RequestContext.Authorizer = &events.APIGatewayV2HTTPRequestContextAuthorizerDescription{
					JWT: &events.APIGatewayV2HTTPRequestContextAuthorizerJWTDescription{Claims: tt.claims},
				}
			}

			applyAuthorizerClaims(&req)

			assert.Equal(t, tt.want, req.Headers)
		})
	}
}
