// Package emit renders a compiled document as WiX markup.
//
// The fragment lists the directory tree depth first, then one Media entry per
// cab volume, then the components grouped under a DirectoryRef per target
// directory, in the order the directories are first used. Component ids are
// either explicit or a sanitized file name followed by the component's
// stable identifier, so two files with similar names never collide.
package emit
