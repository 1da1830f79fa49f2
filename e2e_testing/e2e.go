// Command e2e drives the sql-example demo in a real browser and checks the
// bulk action flows end to end. Start the demo first:
//
//	go run ./examples/sql-example
//	cd e2e_testing && go run . -port 8080
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

type E2EConfig struct {
	Port        string
	BaseURL     string
	Headless    bool
	SlowMo      time.Duration
	WaitTimeout time.Duration
}

func parseFlags() *E2EConfig {
	port := flag.String("port", "8080", "Port number for the BackOffice demo app")
	basePath := flag.String("base-path", "/admin", "Path the admin is mounted on")
	headless := flag.Bool("headless", true, "Run browser in headless mode")
	slowMo := flag.Duration("slow-mo", 100*time.Millisecond, "Slow down operations by specified duration")
	timeout := flag.Duration("timeout", 2*time.Second, "Default timeout for page operations")
	flag.Parse()

	return &E2EConfig{
		Port:        *port,
		BaseURL:     fmt.Sprintf("http://localhost:%s%s", *port, strings.TrimRight(*basePath, "/")),
		Headless:    *headless,
		SlowMo:      *slowMo,
		WaitTimeout: *timeout,
	}
}

type TestResult struct {
	Name   string
	Passed bool
	Error  string
}

type TestRunner struct {
	config  *E2EConfig
	page    playwright.Page
	results []TestResult
}

func NewTestRunner(config *E2EConfig, page playwright.Page) *TestRunner {
	return &TestRunner{config: config, page: page}
}

func (tr *TestRunner) Run(name string, testFunc func(*TestRunner) error) {
	fmt.Printf("RUN   %s\n", name)

	result := TestResult{Name: name}
	if err := testFunc(tr); err != nil {
		result.Error = err.Error()
		fmt.Printf("FAIL  %s: %v\n", name, err)
	} else {
		result.Passed = true
		fmt.Printf("PASS  %s\n", name)
	}

	tr.results = append(tr.results, result)
}

func (tr *TestRunner) AllPassed() bool {
	for _, result := range tr.results {
		if !result.Passed {
			return false
		}
	}
	return true
}

func (tr *TestRunner) open(path string) error {
	if _, err := tr.page.Goto(tr.config.BaseURL + path); err != nil {
		return fmt.Errorf("failed to navigate to %s: %v", path, err)
	}
	return nil
}

// submit clicks the action button with the given key and waits for the
// resulting page to load
func (tr *TestRunner) submit(action string) error {
	button := tr.page.Locator(fmt.Sprintf("button[name='action'][value='%s']", action))
	if err := button.Click(); err != nil {
		return fmt.Errorf("failed to click %s: %v", action, err)
	}
	return tr.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State: playwright.LoadStateLoad,
	})
}

func (tr *TestRunner) messages() (string, error) {
	list := tr.page.Locator("ul.messages")
	if err := list.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(tr.config.WaitTimeout.Milliseconds())),
	}); err != nil {
		return "", fmt.Errorf("no messages shown: %v", err)
	}
	return list.TextContent()
}

func (tr *TestRunner) expectMessage(want string) error {
	got, err := tr.messages()
	if err != nil {
		return err
	}
	if !strings.Contains(got, want) {
		return fmt.Errorf("expected message %q, got %q", want, strings.TrimSpace(got))
	}
	return nil
}

func setupPlaywright(config *E2EConfig) (*playwright.Playwright, playwright.Browser, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, nil, fmt.Errorf("could not start playwright: %v", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(config.Headless),
		SlowMo:   playwright.Float(float64(config.SlowMo.Milliseconds())),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("could not launch browser: %v", err)
	}

	return pw, browser, nil
}

func testIndexPage(tr *TestRunner) error {
	if err := tr.open("/"); err != nil {
		return err
	}

	for _, link := range []string{"Departments", "Employees", "Products"} {
		count, err := tr.page.Locator("ul.resources a").Filter(playwright.LocatorFilterOptions{
			HasText: link,
		}).Count()
		if err != nil {
			return err
		}
		if count == 0 {
			return fmt.Errorf("expected a link to %s", link)
		}
	}
	return nil
}

func testActionBar(tr *TestRunner) error {
	if err := tr.open("/User"); err != nil {
		return err
	}

	for _, action := range []string{"delete_selected", "export_csv", "activate_users", "deactivate_users", "send_welcome_email"} {
		count, err := tr.page.Locator(fmt.Sprintf("button[name='action'][value='%s']", action)).Count()
		if err != nil {
			return err
		}
		if count != 1 {
			return fmt.Errorf("expected one %s button, got %d", action, count)
		}
	}

	checkboxes, err := tr.page.Locator("input.action-select").Count()
	if err != nil {
		return err
	}
	if checkboxes == 0 {
		return fmt.Errorf("expected row checkboxes")
	}

	// read-only resources offer nothing, so no bar is rendered
	if err := tr.open("/Department"); err != nil {
		return err
	}
	bars, err := tr.page.Locator("div.actions").Count()
	if err != nil {
		return err
	}
	if bars != 0 {
		return fmt.Errorf("expected no action bar on a read-only list")
	}
	return nil
}

func testNoSelection(tr *TestRunner) error {
	if err := tr.open("/User"); err != nil {
		return err
	}
	if err := tr.submit("deactivate_users"); err != nil {
		return err
	}
	return tr.expectMessage("Please select at least one row first.")
}

func testExplicitSelection(tr *TestRunner) error {
	if err := tr.open("/User"); err != nil {
		return err
	}
	if err := tr.page.Locator("input.action-select").First().Check(); err != nil {
		return fmt.Errorf("failed to select a row: %v", err)
	}
	if err := tr.submit("deactivate_users"); err != nil {
		return err
	}
	if err := tr.expectMessage("1 employee marked as inactive."); err != nil {
		return err
	}

	if !strings.HasSuffix(tr.page.URL(), "/User") {
		return fmt.Errorf("expected to land back on the list, got %s", tr.page.URL())
	}
	return nil
}

func testSelectAcross(tr *TestRunner) error {
	if err := tr.open("/User?limit=5"); err != nil {
		return err
	}
	if err := tr.page.Locator("input[name='select_across']").Check(); err != nil {
		return fmt.Errorf("failed to select across pages: %v", err)
	}
	if err := tr.submit("activate_users"); err != nil {
		return err
	}
	return tr.expectMessage("15 employees marked as active.")
}

func testDeleteConfirmation(tr *TestRunner) error {
	if err := tr.open("/Product"); err != nil {
		return err
	}
	if err := tr.page.Locator("input.action-select").First().Check(); err != nil {
		return fmt.Errorf("failed to select a row: %v", err)
	}
	if err := tr.submit("delete_selected"); err != nil {
		return err
	}

	content, err := tr.page.Locator("body").TextContent()
	if err != nil {
		return err
	}
	if !strings.Contains(content, "You are about to delete 1 product.") {
		return fmt.Errorf("expected a confirmation page, got %q", strings.TrimSpace(content))
	}

	if err := tr.page.Locator("button").Filter(playwright.LocatorFilterOptions{
		HasText: "Yes, I'm sure",
	}).Click(); err != nil {
		return fmt.Errorf("failed to confirm: %v", err)
	}
	if err := tr.expectMessage("Successfully deleted 1 product."); err != nil {
		return err
	}

	// messages are shown once
	if _, err := tr.page.Reload(); err != nil {
		return err
	}
	count, err := tr.page.Locator("ul.messages").Count()
	if err != nil {
		return err
	}
	if count != 0 {
		return fmt.Errorf("expected the message to be gone after reload")
	}
	return nil
}

func testExportDownload(tr *TestRunner) error {
	if err := tr.open("/Product"); err != nil {
		return err
	}
	if err := tr.page.Locator("input.action-select").First().Check(); err != nil {
		return fmt.Errorf("failed to select a row: %v", err)
	}

	download, err := tr.page.ExpectDownload(func() error {
		return tr.page.Locator("button[name='action'][value='export_csv']").Click()
	})
	if err != nil {
		return fmt.Errorf("expected a download: %v", err)
	}
	if name := download.SuggestedFilename(); name != "price-list.csv" {
		return fmt.Errorf("expected price-list.csv, got %s", name)
	}
	return nil
}

func testGridLayout(tr *TestRunner) error {
	if err := tr.open("/Product?layout=grid"); err != nil {
		return err
	}

	buttons := tr.page.Locator("div.actions button[name='action']")
	count, err := buttons.Count()
	if err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("expected action buttons in grid layout")
	}
	for i := 0; i < count; i++ {
		disabled, err := buttons.Nth(i).IsDisabled()
		if err != nil {
			return err
		}
		if !disabled {
			return fmt.Errorf("expected grid action buttons to be disabled")
		}
	}
	return nil
}

func runE2ETests() error {
	config := parseFlags()
	fmt.Printf("Starting E2E tests against BackOffice at %s\n", config.BaseURL)

	pw, browser, err := setupPlaywright(config)
	if err != nil {
		return fmt.Errorf("failed to setup Playwright: %v", err)
	}
	defer pw.Stop()
	defer browser.Close()

	browserContext, err := browser.NewContext(playwright.BrowserNewContextOptions{
		AcceptDownloads: playwright.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create browser context: %v", err)
	}
	defer browserContext.Close()

	page, err := browserContext.NewPage()
	if err != nil {
		return fmt.Errorf("failed to create new page: %v", err)
	}
	page.SetDefaultTimeout(float64(config.WaitTimeout.Milliseconds()))

	runner := NewTestRunner(config, page)

	runner.Run("IndexPage", testIndexPage)
	runner.Run("ActionBar", testActionBar)
	runner.Run("NoSelection", testNoSelection)
	runner.Run("ExplicitSelection", testExplicitSelection)
	runner.Run("SelectAcross", testSelectAcross)
	runner.Run("ExportDownload", testExportDownload)
	runner.Run("GridLayout", testGridLayout)
	runner.Run("DeleteConfirmation", testDeleteConfirmation)

	passed := 0
	for _, result := range runner.results {
		if result.Passed {
			passed++
		}
	}
	fmt.Printf("\nResults: %d/%d tests passed\n", passed, len(runner.results))

	if !runner.AllPassed() {
		return fmt.Errorf("some tests failed")
	}
	return nil
}

func main() {
	if err := runE2ETests(); err != nil {
		log.Fatal(err)
	}
	fmt.Println("All E2E tests passed")
}
