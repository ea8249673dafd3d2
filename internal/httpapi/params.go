package httpapi

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"gitlab.com/arcanecrypto/noded/internal/apierr"
)

// requiredString returns the named form parameter, reporting Missing if
// it's absent or empty.
func requiredString(c *gin.Context, name string) (string, bool) {
	value := c.PostForm(name)
	if value == "" {
		apierr.MissingParameter(c, name)
		return "", false
	}
	return value, true
}

// optionalString returns the named form parameter, or "" if absent.
func optionalString(c *gin.Context, name string) string {
	return c.PostForm(name)
}

// requiredAmountSat returns the named form parameter coerced to a
// non-negative satoshi amount, reporting Missing/InvalidType as
// appropriate.
func requiredAmountSat(c *gin.Context, name string) (int64, bool) {
	raw, ok := requiredString(c, name)
	if !ok {
		return 0, false
	}
	return parseAmountSat(c, name, raw)
}

// optionalAmountSat returns the named form parameter coerced to a
// non-negative satoshi amount if present; the second return value is
// false when the parameter was omitted entirely (as opposed to present
// but invalid, which reports InvalidType and returns ok=false too).
func optionalAmountSat(c *gin.Context, name string) (int64, bool, bool) {
	raw := c.PostForm(name)
	if raw == "" {
		return 0, false, true
	}
	amount, ok := parseAmountSat(c, name, raw)
	return amount, true, ok
}

func parseAmountSat(c *gin.Context, name, raw string) (int64, bool) {
	amount, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || amount < 0 {
		apierr.InvalidParameter(c, name, "non-negative integer")
		return 0, false
	}
	return amount, true
}

// optionalExpirySeconds returns the expirySeconds parameter if present.
func optionalExpirySeconds(c *gin.Context) (int64, bool, bool) {
	return optionalAmountSat(c, "expirySeconds")
}

// parseNonNegativeInt parses a non-negative base-10 integer from a query
// parameter, independent of the gin.Context-reporting helpers above.
func parseNonNegativeInt(raw string) (int64, error) {
	amount, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || amount < 0 {
		if err == nil {
			return 0, strconv.ErrRange
		}
		return 0, err
	}
	return amount, nil
}
