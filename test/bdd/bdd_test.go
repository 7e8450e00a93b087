package bdd

import (
	"os"
	"testing"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/factorysim-go/test/bdd/steps"
	"github.com/andrescamacho/factorysim-go/test/helpers"
)

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/domain", "features/application"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

func InitializeScenario(sc *godog.ScenarioContext) {
	// Domain scenarios first: first registration wins in godog and the
	// ledger steps use more specific wording than the factory steps
	steps.InitializeInventoryLedgerScenario(sc)
	steps.InitializeFinancialLedgerScenario(sc)

	steps.InitializeFactoryScenario(sc)
}

func TestMain(m *testing.M) {
	// One database for the whole suite; each factory scenario truncates it
	if err := helpers.InitializeSharedTestDB(); err != nil {
		panic("Failed to initialize shared test database: " + err.Error())
	}

	code := m.Run()
	_ = helpers.CloseSharedTestDB()
	os.Exit(code)
}
