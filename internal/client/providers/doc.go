// Package providers contains the social sign-in providers the session store
// delegates to. A provider runs its own interactive flow and returns the
// verified identity together with the provider-issued tokens.
package providers
