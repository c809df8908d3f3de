package models

// Model defines the base interface for all persistent models in the catalog service.
type Model interface {
	// Validate checks if the model's data is valid and returns an error if not
	Validate() error
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                // Create inserts a new model into the database
	Get(id string) (T, error)            // Get retrieves a model by its ID
	Update(model T) error                // Update modifies an existing model in the database
	Delete(id string) error              // Delete removes a model from the database by its ID
	List(limit, offset int) ([]T, error) // List retrieves models ordered for display
}
