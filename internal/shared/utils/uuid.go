package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewUUID генерирует новый UUID v4
func NewUUID() string {
	return uuid.New().String()
}

// NewTrackingID генерирует человекочитаемый tracking id вида PKG-20260826-A1B2C3
func NewTrackingID() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))[:6]
	return fmt.Sprintf("PKG-%s-%s", time.Now().UTC().Format("20060102"), suffix)
}
