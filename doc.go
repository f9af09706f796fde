// Package main provides the entry point for the BuildTrack application.
// It initializes and runs a web server using the Fiber framework that exposes
// a JSON API for construction project management: projects, tasks, clients
// and the generated workflow modules, all guarded by role-based access
// control. The application uses gorm for data persistence and materializes
// its permission matrix as database rows at seed time.
package main
