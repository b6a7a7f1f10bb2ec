package types

import (
	"fmt"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/teris-io/shortid"
)

// GenerateUUID returns a k-sortable unique identifier
func GenerateUUID() string {
	return ulid.Make().String()
}

// GenerateUUIDWithPrefix returns a k-sortable unique identifier
// with a prefix ex inv_0ujsswThIGTUYm2K8FjOOfXtY1K
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return fmt.Sprintf("%s_%s", prefix, GenerateUUID())
}

var (
	sidGenerator *shortid.Shortid
	once         sync.Once
)

func initializeSID() {
	var err error
	sidGenerator, err = shortid.New(1, shortid.DefaultABC, 2342)
	if err != nil {
		panic("failed to initialize shortid generator: " + err.Error())
	}
}

// GenerateShortIDWithPrefix returns a short human-facing ID with a prefix,
// capped at 12 characters, e.g. `RCT_XYZ12A8Q`. Used for receipt numbers.
func GenerateShortIDWithPrefix(prefix string) string {
	once.Do(initializeSID)

	id, err := sidGenerator.Generate()
	if err != nil {
		return ""
	}
	id = strings.ReplaceAll(id, "-", "")

	availableLen := 12 - len(prefix)
	if availableLen <= 0 {
		return ""
	}

	if len(id) > availableLen {
		id = id[:availableLen]
	}

	return strings.ToUpper(fmt.Sprintf("%s%s", prefix, id))
}

const (
	UUID_PREFIX_BUILDING      = "bld"
	UUID_PREFIX_PREMISE       = "prem"
	UUID_PREFIX_METER         = "meter"
	UUID_PREFIX_METER_READING = "read"
	UUID_PREFIX_INVOICE       = "inv"
	UUID_PREFIX_PAYMENT       = "pay"
	UUID_PREFIX_RECEIPT       = "rcpt"
	UUID_PREFIX_SETTINGS      = "setg"
	UUID_PREFIX_AUDIT_LOG     = "audit"

	SHORT_ID_PREFIX_RECEIPT = "RCT"
)
