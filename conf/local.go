package conf

type Local struct {
	Bindings []Binding
}

type Binding struct {
	PathPrefix string `valid:"required"`
	Field      string `valid:"required"`
	Container  string `valid:"required"`
}
