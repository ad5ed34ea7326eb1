package model

import "timelinekit/internal/jsonvalue"

// Common is embedded in every schema object.
type Common struct {
	// Version is the number after the dot of the wire discriminator.
	Version int
	// Metadata is user data, preserved verbatim.
	Metadata *jsonvalue.Object
	// Extra holds wire fields the codec did not recognise, in document order.
	Extra *jsonvalue.Object
}

func newCommon(schema string) Common {
	return Common{Version: CurrentVersions[schema], Metadata: jsonvalue.NewObject()}
}

// Base exposes the shared fields through the Entity interface.
func (c *Common) Base() *Common {
	return c
}

// Entity is implemented by every schema object.
type Entity interface {
	Base() *Common
	SchemaName() string
}
