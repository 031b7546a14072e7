// Package swix implements the SWIX installer dialect on top of the generic
// AHL grammar.
//
// A source file has three top-level sections:
//
//	:directories
//	  TARGETDIR
//	    ProgramFilesFolder
//	      App :: id=INSTALLDIR
//	:cabFiles
//	  app :: compression=high, split=2
//	:files :: to=INSTALLDIR, cab=app
//	  bin/app.exe :: vital=true
//	    !services AppSvc :: start=auto
//	    !shortcuts "App" :: dir=ProgramMenuFolder
//
// Attributes such as to, cab, compression or start are inherited from
// enclosing lines and ?defaults frames. Attributes that name a single node
// (id, name, displayName, description, arguments) are read from the item's
// own line only.
package swix
