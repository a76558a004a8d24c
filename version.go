package main

// Version is the newver CLI version. It is set by newver itself on release.
var Version = "0.1.0"
