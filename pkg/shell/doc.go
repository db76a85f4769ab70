// Package shell provides the interactive scheman prompt.
//
//	scheman > status
//	scheman > up
//	scheman > gen add email to users
//	scheman > exit
//
// Every command maps onto one executor operation. Failures are printed and
// the prompt returns, so a bad migration never ends the session.
package shell
