package services

import (
	"errors"
	"fmt"
	"testing"

	gomysql "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

func TestIsDuplicateKeyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm sentinel", gorm.ErrDuplicatedKey, true},
		{"mysql 1062", &gomysql.MySQLError{Number: 1062, Message: "Duplicate entry '42-7' for key 'uniq_submission_reviewer'"}, true},
		{"wrapped mysql 1062", fmt.Errorf("failed to save review: %w", &gomysql.MySQLError{Number: 1062}), true},
		{"mysql foreign key", &gomysql.MySQLError{Number: 1452}, false},
		{"unrelated", errors.New("connection reset"), false},
	}

	for _, tt := range tests {
		if got := IsDuplicateKeyError(tt.err); got != tt.want {
			t.Errorf("%s: IsDuplicateKeyError = %v, want %v", tt.name, got, tt.want)
		}
	}
}
