package registrations

type Repo interface {
	Upsert(registration *Registration) error
	Delete(registrationID string) error
	Get(registrationID string) (*Registration, error)
	List() ([]*Registration, error)
}
