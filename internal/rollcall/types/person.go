package types

type Person struct {
	TagID       string  `json:"tag_id"`
	Name        string  `json:"name"`
	EmployeeID  string  `json:"employee_id"`
	Department  *string `json:"department,omitempty"`
	Designation *string `json:"designation,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Email       *string `json:"email,omitempty"`
}

type RegisterRequest struct {
	TagID       string  `json:"tag_id"`
	Name        string  `json:"name"`
	EmployeeID  string  `json:"employee_id"`
	Department  *string `json:"department,omitempty"`
	Designation *string `json:"designation,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Email       *string `json:"email,omitempty"`
}

type RegisterResult struct {
	Created bool   `json:"created"`
	Message string `json:"message"`
	Person  Person `json:"person"`
}
