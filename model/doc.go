/*

Package model provides the common foundation of models: hyper-parameter
management, the base model every model embeds and its random generator.

Concrete models live in sub-packages. The glrm sub-package fits generalized
low rank models to partially observed matrices.

*/
package model
