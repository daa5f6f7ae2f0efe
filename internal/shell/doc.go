// Package shell renders the vagrant() wrapper function that runs Vagrant inside
// a container, and inspects shell sources for function definitions using the
// mvdan.cc/sh parser.
package shell
