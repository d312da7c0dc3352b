package rollout_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestRolloutScenarios(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Rollout Scenario Suite")
}
