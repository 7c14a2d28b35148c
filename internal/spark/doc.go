// Package spark manages the configured "sparks": named bindings of a device
// variable to a cache duration, and renders them as text.
//
// A spark is what a page embeds. Its value is the variable's current result,
// its status is whether the device is online, and its snapshot compares the
// live reading with what the cache currently serves.
//
// Sparks are loaded from the sparks section of config.yaml into a Registry;
// the Service reads them through the device cloud client.
package spark
