/*

Package base provides base data structures and functions for lowrank.

The base data structures and functions include:

* Dense Matrices

* Random Generator

* CSV Parsing

* Numeric Helpers

*/
package base
