// Package conndata retrieves database credentials from the Mardens
// remote configuration endpoint and builds MySQL connection pools from
// them. Credentials are fetched once at process startup and treated as
// immutable; a pool is never constructed from anything but a
// successfully fetched document.
package conndata

// DatabaseConnectionData is the credential document served by the
// remote configuration endpoint. It carries the primary MySQL
// credentials alongside a secondary Filemaker credential set and the
// authentication hash used by services that talk to the config API.
type DatabaseConnectionData struct {
	// Host is the MySQL host, with or without a port (3306 assumed).
	Host string `json:"host"`
	// User is the MySQL username.
	User string `json:"user"`
	// Password is the MySQL password.
	Password string `json:"password"`
	// Filemaker holds credentials for the Filemaker backend.
	Filemaker FilemakerCredentials `json:"filemaker"`
	// Hash is the authentication hash for the configuration API.
	Hash string `json:"hash"`
}

// FilemakerCredentials is the credential set for the Filemaker
// backend, carried in the same document as the MySQL credentials.
type FilemakerCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
