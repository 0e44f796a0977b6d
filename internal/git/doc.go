// Package git checks whether the chatvault store file is kept out of version
// control. The store holds its encryption key in clear, so committing it
// publishes the data.
package git
