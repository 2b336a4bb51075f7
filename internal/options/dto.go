package options

// CreateOptionDTO holds the fields required to persist a new special option.
type CreateOptionDTO struct {
	Name    string
	Details string
}

// UpdateOptionDTO carries the optional fields of an option patch. The file
// list is mutated through the dedicated append/remove operations, never here.
type UpdateOptionDTO struct {
	Name    *string
	Details *string
}
