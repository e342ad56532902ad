// Package logserver runs the dataset log service: a single goroutine that
// owns the recording container and applies events from many producers in
// arrival order. Producers hold copyable DatasetLogger values and never
// touch storage; the server keeps a write cursor per dataset and grows
// datasets as appends run past their extent. Errors are fatal by default,
// ending the run with the container flushed and closed.
package logserver
