// Package framework provides the cooperative control loop hosting the CEC
// engine, and helpers to run background activities around it.
package framework
