package handler

import "github.com/google/uuid"

func newUploadID() string {
	return uuid.NewString()
}
