// Package services contains the application services of the InboxMemory
// client: the passwordless authentication flow, the knowledge-base
// repository, and the question-answering interaction. All of them sit on the
// transport Client and own the state the presentation layer must not touch
// directly.
package services
