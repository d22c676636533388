// Command winnow finds and removes perceptually duplicate images.
package main
