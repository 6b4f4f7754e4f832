package avoid_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestAvoid(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Avoid Suite")
}
