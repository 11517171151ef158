package vision

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		code int
		want error
	}{
		{http.StatusTooManyRequests, ErrRateLimited},
		{http.StatusUnauthorized, ErrAuth},
		{http.StatusForbidden, ErrAuth},
		{http.StatusRequestTimeout, ErrTimeout},
		{http.StatusGatewayTimeout, ErrTimeout},
		{http.StatusBadGateway, ErrUpstream},
	}

	for _, tt := range tests {
		if got := classifyStatus(tt.code); got != tt.want {
			t.Errorf("classifyStatus(%d) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestWrapGRPCStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"resource exhausted", status.Error(codes.ResourceExhausted, "quota"), ErrRateLimited},
		{"unauthenticated", status.Error(codes.Unauthenticated, "key"), ErrAuth},
		{"permission denied", status.Error(codes.PermissionDenied, "key"), ErrAuth},
		{"deadline", status.Error(codes.DeadlineExceeded, "slow"), ErrTimeout},
		{"internal", status.Error(codes.Internal, "boom"), ErrUpstream},
		{"plain error", errors.New("connection reset"), ErrUpstream},
		{"context deadline", context.DeadlineExceeded, ErrTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := wrap(context.Background(), tt.err)
			if !errors.Is(err, tt.want) {
				t.Errorf("wrap = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestImageFormat(t *testing.T) {
	tests := map[string]string{
		"image/png":  "png",
		"IMAGE/PNG":  "png",
		"image/jpeg": "jpeg",
		"image/jpg":  "jpeg",
		"":           "jpeg",
	}

	for in, want := range tests {
		if got := imageFormat(in); got != want {
			t.Errorf("imageFormat(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestDataURI(t *testing.T) {
	image := []byte{0xff, 0xd8, 0xff, 0xe0, 'J', 'F', 'I', 'F'}

	tests := []struct {
		contentType string
		prefix      string
	}{
		{"image/jpeg", "data:image/jpeg;base64,"},
		{"image/jpg", "data:image/jpeg;base64,"},
		{"image/png", "data:image/png;base64,"},
		{"IMAGE/PNG", "data:image/png;base64,"},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			uri, err := dataURI(tt.contentType, image)
			if err != nil {
				t.Fatalf("dataURI: %v", err)
			}
			payload, ok := strings.CutPrefix(uri, tt.prefix)
			if !ok {
				t.Fatalf("uri = %s, want prefix %s", uri, tt.prefix)
			}
			decoded, err := base64.StdEncoding.DecodeString(payload)
			if err != nil {
				t.Fatalf("decode payload: %v", err)
			}
			if string(decoded) != string(image) {
				t.Errorf("payload = %x, want %x", decoded, image)
			}
		})
	}
}
