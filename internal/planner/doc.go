// Package planner sorts a user's todos into views and checks due dates.
//
// Every function here is pure: the current instant is passed in, and
// calendar days are read in the location of that instant.
package planner
