package utils

import (
	"github.com/google/uuid"
)

// GenerateID 生成随机 ID
func GenerateID() string {
	return uuid.NewString()
}
