//go:build integration

package integration

import (
	"testing"

	"fxquotes/internal/testkit"
)

var suite = testkit.NewSuite()

func TestMain(m *testing.M) {
	suite.Run(m)
}
