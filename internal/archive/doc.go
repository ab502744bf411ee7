// Package archive unpacks bulk-data zip archives and decides when an
// archive has to be (re)extracted.
//
// Extract refuses any entry that would land outside the destination
// (zip-slip) and skips OS metadata entries (__MACOSX/, .DS_Store).
//
// Resolve maps an input path to a directory root:
//
//	archive  directory  archive newer  action
//	no       no         -              SOURCE_NOT_FOUND
//	no       yes        -              use directory
//	yes      no         -              create directory, extract
//	yes      yes        no             use directory
//	yes      yes        yes            delete directory, recreate, extract
//
// Resolve may delete a directory tree. Callers must not hold open handles
// into it across a call.
package archive
