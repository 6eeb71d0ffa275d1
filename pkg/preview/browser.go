package preview

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pkg/browser"
)

// openers are swapped out in tests.
var (
	openFile = browser.OpenFile
	openURL  = browser.OpenURL
)

// OpenBrowser shows target in the platform's default browser. target is
// either an http(s) URL or a path to a written document.
func OpenBrowser(target string) error {
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		if err := openURL(target); err != nil {
			return fmt.Errorf("open %s: %w", target, err)
		}
		return nil
	}
	abs, err := filepath.Abs(target)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", target, err)
	}
	if err := openFile(abs); err != nil {
		return fmt.Errorf("open %s: %w", abs, err)
	}
	return nil
}
