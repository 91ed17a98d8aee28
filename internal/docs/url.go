package docs

import (
	"fmt"
	"strings"

	"github.com/pankaj-dahiya-devops/shcx/internal/controlid"
)

// DefaultBaseURL is the root of the Security Hub user guide.
const DefaultBaseURL = "https://docs.aws.amazon.com/securityhub/latest/userguide"

// DeriveURL maps a control identifier to the documentation section that
// describes it: "IAM.5" becomes <base>/iam-controls.html#iam-5.
// Identifiers without the <prefix>.<number> shape are rejected with an error
// wrapping controlid.ErrMalformed.
func DeriveURL(baseURL, controlID string) (string, error) {
	prefix, number, err := controlid.Split(controlID)
	if err != nil {
		return "", fmt.Errorf("derive documentation URL: %w", err)
	}
	service := strings.ToLower(prefix)
	return fmt.Sprintf("%s/%s-controls.html#%s-%s", strings.TrimRight(baseURL, "/"), service, service, number), nil
}

// AnchorID is the id of the heading that opens the control's section.
func AnchorID(controlID string) string {
	return strings.ReplaceAll(strings.ToLower(controlID), ".", "-")
}

// PageURL strips the fragment so controls documented on the same page share
// one fetch.
func PageURL(u string) string {
	if i := strings.IndexByte(u, '#'); i >= 0 {
		return u[:i]
	}
	return u
}
