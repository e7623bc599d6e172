/*
Package nodepath addresses nodes inside parsed BluePrint documents.

A path is a dot-separated sequence of segments. The first segment names a
root block by its identifier; the following ones name properties, and an
index in brackets selects an array item:

	LinkedList<T>.properties.head
	Auth.behaviors[0]
	Api."x-trace"
	Grid.matrix[1][0]

Generic brackets are part of a segment, so `Map<K.V>` is one segment.
Segments that contain dots, brackets or quotes are written quoted.
*/
package nodepath
