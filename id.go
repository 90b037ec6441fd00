package khata

import "github.com/xraph/khata/id"

// ID is the primary identifier type for all Khata entities.
type ID = id.ID

// Prefix identifies the entity type encoded in a TypeID.
type Prefix = id.Prefix
