// Command shuttle is the terminal front end for the upload core: it
// enqueues files, drains them through the external uploader CLI, and
// renders live progress while the uploads run.
package main
