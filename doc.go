// Package main provides the entry point for the Taskery task management
// backend. It runs a web server using the Fiber framework that exposes a JSON
// REST API over users, task groups, tasks, and the role-carrying memberships
// joining users to task groups. The application uses gorm for data
// persistence; multi-record writes such as creating a group with its initial
// memberships commit or roll back as one transaction.
package main
