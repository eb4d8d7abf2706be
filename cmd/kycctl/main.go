// Command kycctl scores images offline with the same services the HTTP
// endpoints use.
package main

func main() {
	Execute()
}
