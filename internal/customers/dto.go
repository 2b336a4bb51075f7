package customers

// CreateCustomerDTO holds the fields required to persist a new customer.
type CreateCustomerDTO struct {
	Name  string
	Notes string
}

// UpdateCustomerDTO carries the optional fields of a customer patch.
type UpdateCustomerDTO struct {
	Name  *string
	Notes *string
}
